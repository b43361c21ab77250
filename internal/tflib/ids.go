package tflib

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var uuidNamespaces = map[string]uuid.UUID{
	"dns":  uuid.NameSpaceDNS,
	"url":  uuid.NameSpaceURL,
	"oid":  uuid.NameSpaceOID,
	"x500": uuid.NameSpaceX500,
}

type uuidParams struct {
	Namespace string `mapstructure:"namespace"`
}

// generateUUID derives a name-based (v5) UUID from the "_"-joined non-null
// arguments.
func generateUUID(args []any, params any) (any, error) {
	p := uuidParams{Namespace: "dns"}
	if err := decodeParams("generate_uuid", params, &p); err != nil {
		return nil, err
	}
	ns, ok := uuidNamespaces[strings.ToLower(p.Namespace)]
	if !ok {
		return nil, fmt.Errorf("generate_uuid: unknown namespace %q (want dns, url, oid or x500)", p.Namespace)
	}
	var parts []string
	for _, v := range flatten(args) {
		if v != nil {
			parts = append(parts, fmt.Sprint(v))
		}
	}
	return uuid.NewSHA1(ns, []byte(strings.Join(parts, "_"))).String(), nil
}
