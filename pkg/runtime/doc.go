// Package runtime provides the container types compiled programs use for
// indexing.
//
// Indices reaching this package are 0-based. The End sentinel stands for
// the source language's "end" keyword: an index relative to the length of
// the container being accessed. Because the compiler subtracts one from
// every subscript bound, the source index end+1 arrives as End{Offset: 0}
// and end-1 arrives as End{Offset: -2}.
//
// Containers are not safe for concurrent use.
package runtime
