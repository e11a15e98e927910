// Package game implements the rules engine for Liar's Bar.
//
// The main type is Manager, which drives one game for a single room: dealing
// rounds, validating plays, resolving challenges and trusts, and running the
// roulette that eliminates players until one survivor remains.
//
// # Basic Usage
//
// The Manager is synchronous and is not safe for concurrent use. Its owner
// (normally a room worker goroutine) serialises every call and supplies the
// side effects through small interfaces:
//
//	roster := game.NewRoster()
//	roster.Add(game.NewPlayer("p1", "Alice", false, cfg.ChamberSize))
//	roster.Add(game.NewPlayer("p2", "Bob", false, cfg.ChamberSize))
//	m := game.NewManager(cfg, roster, gateway, scheduler, clock, rng, logger)
//	if err := m.Start(); err != nil {
//	    // not enough players
//	}
//	m.HandlePlay("p1", []int{0, 3})
//
// Gateway receives every public and private event. Scheduler is asked to
// deliver a Timer back to HandleTimer after a delay; timers carry a sequence
// number so that ones scheduled for an earlier state are ignored.
//
// # Deterministic Testing
//
// All randomness (deck shuffles, targets, bullet positions, timeout plays)
// comes from the *rand.Rand handed to NewManager, so a fixed seed replays a
// game exactly.
package game
