// Package localstore persists the todo list and preferences on the local
// filesystem using diskv. The whole list is stored as one JSON value under
// the "todos" key and the theme under "theme".
package localstore
