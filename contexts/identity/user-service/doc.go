// Package userservice contains the user registry: the write path that emits
// user-created events, and the cached read path.
//
// The module keeps domain/application logic decoupled from runtime/platform
// concerns through ports and adapter composition.
package userservice
