// Package goshape validates untyped data (the map[string]any / []any trees
// produced by JSON and YAML decoders) against composable validator nodes.
//
// - Primitive, literal, object, array and union validators, plus Assert/Apply/Chain/Optional wrappers
// - A stable error model via Issues (path, code, expected, message)
// - Union failures are reported for the branch the input evidently targeted
// - Unchanged input is returned as-is; copies are made only where a transform or key policy changed something
// - Document sources (JSON/YAML) with duplicate-key/depth/size enforcement
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Place schema documents under schemadoc/, JSON Schema export under jsonschema/, and the CLI under cmd/goshape.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	user := goshape.Object(
//		goshape.Field("id", goshape.String()),
//		goshape.Field("tags", goshape.Array(goshape.String()).Optional()),
//	)
//	v, err := user.Parse(input, goshape.ParseOpt{Mode: goshape.UnknownStrip})
//	v, err = goshape.ParseFrom(ctx, user, goshape.JSONBytes(data))
//	if iss, ok := goshape.AsIssues(err); ok { ... }
package goshape
