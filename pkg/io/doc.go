// Package io reads and writes chart documents as JSON or YAML.
//
// # Format
//
// Both encodings share one shape, checked against the JSON Schema embedded
// in package chart:
//
//	{
//	  "title": "Release plan",
//	  "swimlanes": [
//	    {"id": "dev", "name": "Development", "items": [
//	      {"id": "api", "start": 0, "duration": 5},
//	      {"id": "ui", "start": 5, "duration": 3}
//	    ]}
//	  ],
//	  "links": [{"from": "api", "to": "ui"}],
//	  "flags": [{"label": "freeze", "at": 7}]
//	}
//
// Only "swimlanes" and each lane's "name" are required. Missing ids are
// generated ("lane-1", "item-2", ...), items default to kind "task", and links
// default to the finish-to-start handles.
//
// # Import
//
// [Decode] reads from memory, [Read] from any io.Reader and [Import] from a
// file whose extension selects the format:
//
//	c, err := io.Import("plan.yaml")
//
// Every reader runs the same steps: schema check, decode, normalize and
// semantic validation. The returned chart is ready for layout.
//
// # Export
//
// [Write] and [Export] are the inverse. Exports are normalized charts, so
// re-importing one yields the same ids.
package io
