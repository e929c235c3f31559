// Package card implements the postcard record and its synchronization.
//
// # Components
//
//   - Schema: NewSchema composes the title, authorship and geolocation mixins
//     with the card's own directives (frame_delay, url, media_url), the
//     _resources asset set and the photos child relation.
//   - Store: gorm persistence of cards and photos; implements reconcile.Store.
//     Commit applies the parent update and the photo plan in one transaction.
//   - Assigner: stamps a fresh uuid, draft state and author on new cards.
//   - Privacy: SetCollaborative toggles protected/public with a single column
//     update; IsCollaborative reads it.
//   - Service: creation, listing, local edits (which mark the card dirty),
//     pull/push through the reconcile engine, photo content access and share
//     links resolved against the remote base url.
//   - Handler: Fiber routes under /cards.
//
// # Usage
//
//	store := card.NewStore(db)
//	engine := reconcile.NewEngine(card.NewSchema(), store, remoteClient)
//	linker, _ := card.NewLinker("https://postcards.example.org/api/")
//	svc := card.NewService(store, engine, accounts, resolver, linker, "Untitled", log)
//	c, _ := svc.Create(ctx, card.NewCard{Title: "Trip"})
//	res, err := svc.Pull(ctx, c.UUID)
package card
