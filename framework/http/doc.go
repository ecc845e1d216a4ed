// Package http provides the request and response helpers used by the
// envguard HTTP service.
//
// # Request
//
//	req := gohttp.NewRequest(r)
//
//	var body struct {
//	    Schema yaml.Node         `yaml:"schema"`
//	    Env    map[string]string `yaml:"env"`
//	}
//	if err := req.BindYAML(&body); err != nil { ... } // JSON bodies work too
//
//	if !req.AcceptsDocument() { ... }                  // 415 for anything but JSON/YAML
//	strict := req.Query("strict", "false")
//
// # Response
//
//	res := gohttp.NewResponse(w)
//	res.Success(values)                 // 200 {"data": ...}
//	res.Error(400, "bad schema")        // {"message": "bad schema"}
//	res.NotFound()                      // 404 {"message": "Not found."}
//	res.ValidationError(errs, values)   // 422 {"message": ..., "errors": {"FIELD": ["msg"]}}
package http
