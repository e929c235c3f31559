// Package reconcile provides the declarative entity-synchronization engine that
// keeps a local record consistent with a remote JSON document.
//
// A record type is described once, at startup, by a Schema. The schema bundles
// three declarative pieces that the Engine drives:
//
//  1. Table: the field-level directive table. Each Directive maps a local field
//     to a remote JSON key, a value type and a direction (pull only, push only
//     or both). Tables are composed from ordered sources (shared mixins first,
//     then the record type's own directives). A later source replaces an
//     earlier directive for the same local field and the replacement keeps the
//     position of the entry it replaced.
//
//  2. ResourceSet: the optional "_resources" sub-document of derived assets
//     (renders, cover photo, thumbnail). Only sub-fields the remote supplies are
//     written, so assets that arrive across several partial responses never
//     clobber each other.
//
//  3. ChildRelation: an ordered one-to-many child collection. The remote list
//     is authoritative; PlanChildren turns it into delete/update/insert actions
//     whose positions are the remote indices.
//
// # Merge primitive
//
// All three pieces share MergePresent: read a value through an Accessor, skip
// it when absent, otherwise write it through a Mutator. Pull reads from the
// remote document into the merge buffer, push reads from the local fields into
// the outgoing document.
//
// # Cycles
//
// Engine.Pull fetches the remote document, stages pull directives, resources
// and the child plan into a buffer seeded from the local snapshot and hands
// everything to Store.Commit as one atomic write. Engine.Push builds the
// outgoing document from push directives, submits it and marks the record as
// synced. A failure at any step returns a typed error (see errors.go) and the
// local record is left exactly as it was.
//
// Concurrent cycles for the same uuid and direction are coalesced into one.
// Callers must still not edit a record locally while a cycle for it is in
// flight.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(card.NewSchema(), store, remoteClient,
//	    reconcile.WithLogger(log),
//	    reconcile.WithConflictPolicy(reconcile.PolicyKeepLocal),
//	)
//	result, err := engine.Pull(ctx, "6f1c...")
package reconcile
