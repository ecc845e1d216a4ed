// Package schema loads env schemas from YAML or JSON documents.
//
// A document maps variable names to either a bare type name or a field
// object. Document order is schema order.
//
//	APP_NAME: string
//	APP_PORT:
//	  type: number
//	  integer: true
//	  min: 1
//	  max: 65535
//	  default: 8000
//	DATABASE_URL:
//	  type: url
//	  required: true
//	  protocols: [postgres]
//	  secret: true
//	LOG_LEVEL:
//	  type: enum
//	  values: [debug, info, warn, error]
//	  default: info
//
// Object keys: type, required, default, minLength, maxLength, pattern, min,
// max, integer, separator, protocols, values, secret, description. Unknown
// keys are rejected. Custom types are added with Loader.Register.
package schema
