// Package pipeline compiles a canonical transform into one invocable
// function.
//
// Step functions are looked up by package path and name in a Registry
// populated at startup. Each step's Params are bound when the pipeline is
// built; steps run left to right, the output of one becoming the sole
// argument of the next. The compiled Pipeline adapts three call shapes
// (positional, keyword, bare scalar) onto the composed function and wraps
// the result according to the kind the final function declared when it was
// registered.
package pipeline
