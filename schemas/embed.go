// Package schemas embeds the JSON Schemas of the artifacts the importer produces.
package schemas

import _ "embed"

// LinkedInImportFile is the file name of the ParseResult schema.
const LinkedInImportFile = "linkedin_import.schema.json"

// LinkedInImport is the JSON Schema of a parsed LinkedIn profile.
//
//go:embed linkedin_import.schema.json
var LinkedInImport string
