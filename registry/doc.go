// Package registry provides the wire types and HTTP client for the Open
// Register platform.
//
// Every register lives on its own host, scoped by phase:
//
//	http://register.{phase}.openregister.org/record/{name}.json  # register metadata
//	http://field.{phase}.openregister.org/record/{name}.json     # field metadata
//	https://{name}.{phase}.openregister.org/records.json         # record set
//	http://register.{phase}.openregister.org/records.json        # register index
//
// The client builds these URLs deterministically, consults an optional
// response store (see package cache) before issuing a GET, and decodes the
// JSON while preserving the document order of record ids.
//
// # Usage
//
//	client := registry.NewClient()
//	meta, err := client.GetRegisterMetadata(ctx, "alpha", "country")
//	if err != nil {
//	    // Handle validation or network errors
//	}
//	records, err := client.GetRecords(ctx, "alpha", "country", registry.DefaultPageSize)
package registry
