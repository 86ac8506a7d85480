// Package schema validates data against JSON element descriptions
// published as CloudObjects objects (the coid://json.cloudobjects.io/
// vocabulary).
//
// A description is a node typed json:String, json:Boolean, json:Number,
// json:Integer, json:Array or json:Object. Object nodes list their members
// with json:requiresProperty and json:supportsOptionalProperty; each
// member node names its key with json:hasKey and is itself a description.
// Nodes without any of these types accept any value.
//
// Validator checks data directly against the nodes and reports the JSON
// path of the first mismatch. JSONSchema converts the same nodes into a
// standard JSON Schema document for use by other tools.
package schema
