// Package boundary computes the workspace root and decides whether a path
// lies inside it or inside an allow-list.
//
// An empty root means the root could not be determined. Callers guarding
// destructive operations must treat it as "nothing is inside".
package boundary
