// Copyright 2025 Sylos contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package versioning

import "github.com/santhosh-tekuri/jsonschema/v5"

// scriptSchema checks the structure of an update script: every known
// operation carries its required fields with the right shapes. Unknown
// operations only need their "operation" name.
const scriptSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["updates"],
  "properties": {
    "updates": {"$ref": "#/definitions/updates"}
  },
  "definitions": {
    "updates": {
      "type": "array",
      "items": {"$ref": "#/definitions/operation"}
    },
    "name": {"type": "string", "minLength": 1},
    "scalar": {"type": ["string", "boolean", "number"]},
    "properties": {
      "type": "object",
      "additionalProperties": {
        "anyOf": [
          {"$ref": "#/definitions/scalar"},
          {"type": "array", "items": {"$ref": "#/definitions/scalar"}}
        ]
      }
    },
    "operation": {
      "type": "object",
      "required": ["operation"],
      "properties": {
        "operation": {"type": "string"},
        "at": {"$ref": "#/definitions/name"},
        "property": {"$ref": "#/definitions/name"},
        "val": {"type": "string"},
        "ifUpdates": {"$ref": "#/definitions/updates"},
        "elseUpdates": {"$ref": "#/definitions/updates"},
        "jcr:primaryType": {"type": "string"},
        "properties": {"$ref": "#/definitions/properties"},
        "from": {"$ref": "#/definitions/name"},
        "to": {"$ref": "#/definitions/name"},
        "overwrite": {"type": "boolean"},
        "fromNode": {"$ref": "#/definitions/name"},
        "fromProperty": {"$ref": "#/definitions/name"},
        "toNode": {"$ref": "#/definitions/name"},
        "toProperty": {"$ref": "#/definitions/name"}
      },
      "allOf": [
        {"if": {"properties": {"operation": {"const": "ifExists"}}},
         "then": {"required": ["at"]}},
        {"if": {"properties": {"operation": {"const": "ifPropertyExists"}}},
         "then": {"required": ["property"]}},
        {"if": {"properties": {"operation": {"const": "ifPropertyEquals"}}},
         "then": {"required": ["property", "val"]}},
        {"if": {"properties": {"operation": {"const": "addNode"}}},
         "then": {"required": ["at"]}},
        {"if": {"properties": {"operation": {"const": "moveNode"}}},
         "then": {"required": ["from", "to"]}},
        {"if": {"properties": {"operation": {"const": "copyProperty"}}},
         "then": {"required": ["fromProperty", "toProperty"]}},
        {"if": {"properties": {"operation": {"const": "setProperties"}}},
         "then": {"required": ["properties"]}},
        {"if": {"properties": {"operation": {"const": "removeNode"}}},
         "then": {"required": ["at"]}},
        {"if": {"properties": {"operation": {"const": "removeProperty"}}},
         "then": {"required": ["property"]}}
      ]
    }
  }
}`

var compiledScriptSchema = jsonschema.MustCompileString("update-script.json", scriptSchema)
