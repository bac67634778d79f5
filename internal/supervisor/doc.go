// Macrocore - Sports Nutrition Computation Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/macrocore

/*
Package supervisor runs the long-lived parts of Macrocore under a suture v4
supervisor tree.

The tree has three layers so that a failing component restarts without
taking the others down:

	RootSupervisor ("macrocore")
	├── DataSupervisor ("data-layer")
	│   └── storage-gc (Badger value log GC)
	├── MessagingSupervisor ("messaging-layer")
	│   └── invalidation-listener (if EVENTS_ENABLED)
	└── APISupervisor ("api-layer")
	    └── http-server

Supervisor events (restarts, backoff, timeouts) are logged through the
zerolog-backed slog adapter from internal/logging.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{})
	if err != nil {
	    return err
	}
	tree.AddDataService(storage.NewGCService(db))
	tree.AddMessagingService(events.NewInvalidationListener(bus, cat))
	tree.AddAPIService(services.NewHTTPServerService(server, addr, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Run(ctx)
*/
package supervisor
