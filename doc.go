// Package herald relays producer events into chat destinations.
//
// An inbound request is turned into an event by a Source, matched against a
// rule table by event kind, optionally adjusted by the rule's mutation step,
// and posted through a destination client. Rules that wait for the
// destination's acknowledgement may run a continuation afterwards; the
// continuation runs in the background and is returned to the caller as a
// Task that can be awaited or abandoned.
//
// Cross-event state (which forum thread belongs to which producer entity)
// lives in a correlation store. Every dispatch is also recorded so failed
// continuations, which no caller sees, can be inspected later.
//
// Quick start:
//
//	st := memory.New()
//	client, _ := discord.New(botToken)
//	ws, _ := workshop.New(workshopCfg, client, st)
//
//	h, err := herald.New(
//	    herald.WithStore(st),
//	    herald.WithDestination(client),
//	    herald.WithSource(ws),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Stop(context.Background())
//
//	http.Handle("/", api.NewHandler(h, st, logger).Handler())
package herald
