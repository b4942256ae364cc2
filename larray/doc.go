// Package larray implements the generic N-dimensional labeled-array
// primitive the modeling core is built on: a dense array of values paired
// with an ordered list of named dimensions and, per dimension, an index of
// coordinate values.
//
// It is the collaborator described by the core's labeled-array contract:
// construction from dense data plus named coordinates, broadcast alignment
// of two arrays to a common shape with dimension order determined by first
// appearance, elementwise arithmetic, concatenation along a named axis,
// selection by label, reduction/merge by dimension name, roll with fill,
// and introspection of names and coordinates. For every labeled-array
// operation the core package depends on this contract alone; it never
// reaches past it into a concrete tensor library.
package larray
