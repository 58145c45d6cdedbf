// Package virsh builds and runs virsh, qemu-img and qemu-nbd commands from
// static operation descriptors and shapes their output.
//
// A Descriptor says which tool and sub-command an operation runs and how its
// output is parsed (its Shape). A Runner turns a descriptor, positional
// arguments and Options into a command line, executes it through a
// transport.Executor and routes stdout through the matching parser:
//
//	ShapeRaw, ShapeNone  transport.Result, success not checked
//	ShapeScalar          first non-empty line (int with Convert)
//	ShapeKeyValue        textparse.ParseKeyValueLines
//	ShapeTable           textparse.ParseWhitespaceTable
//	ShapeStats           textparse.ParseStatLines
//	ShapeXML             xmlmap.Decode, value under RootKey
//	ShapeTune            key/value when only reading, raw when setting
//
// Every shape except raw and none requires the command to succeed and
// reports failure as a *CommandError carrying stderr verbatim.
package virsh
