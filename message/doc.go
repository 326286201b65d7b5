// Package message is the heart of this library. It provides a tree of Part
// values for reading email messages (that survive even when the input is not
// strictly correct) and for generating new messages that are strictly
// correct. The two can be mixed freely to transform existing messages.
//
// A Part is either a Single, holding a body, or a Multi, holding sub-parts
// between boundaries. Parts loaded from a Source read their header and body
// from it only when asked. Any change is kept on the Part itself, so the
// Source is never written to until Save is called.
//
// A message is loaded through one of the sources in the source package:
//
//	src, err := source.OpenFile("message.eml")
//	if err != nil {
//	  panic(err)
//	}
//	defer src.Free()
//
//	msg, err := src.Load()
//	if err != nil {
//	  panic(err)
//	}
//
// Or a new message is started with New() and filled in using the
// SpecializeAs methods and the recipes on Multi, such as SetAlternative.
// Either way, WriteTo serializes the tree.
package message
