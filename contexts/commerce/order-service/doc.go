// Package orderservice contains the order registry: order creation validated
// against a locally replicated set of known users, the cached read path, and
// the replica upsert consumed from user-created events.
//
// The module keeps domain/application logic decoupled from runtime/platform
// concerns through ports and adapter composition.
package orderservice
