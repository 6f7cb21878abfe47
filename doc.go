// Package looptest lets ordinary, synchronous go-test functions execute
// asynchronous (cooperatively scheduled) test bodies and fixtures with a
// deterministic lifecycle and no cross-test leakage.
//
// Tests and fixtures are registered with a Suite. A fixture is a named
// setup/teardown unit injected by name into the parameter set of tests and
// other fixtures. Asynchronous fixtures and test bodies are driven to
// completion on a per-test event loop that is created before the test and
// closed unconditionally after it.
//
// # Basic Usage
//
//	suite := looptest.NewSuite()
//	defer suite.Close()
//
//	err := suite.Fixture(looptest.NewFixture("server_addr",
//		looptest.AsyncGenFixtureFunc(func(y *looptest.Yielder, args looptest.Args) error {
//			srv := startServer(args["unused_tcp_port"].(int))
//			y.Yield(srv.Addr())
//			return srv.Shutdown()
//		}), "unused_tcp_port"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	item, err := suite.Collect("test_roundtrip",
//		looptest.AsyncTestFunc(func(task *looptest.Task, args looptest.Args) error {
//			return ping(args["server_addr"].(string))
//		}),
//		looptest.WithParams("server_addr"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	func TestRoundtrip(t *testing.T) {
//		suite.Run(t, item)
//	}
//
// # Builtin Fixtures
//
// Every suite registers three fixtures: event_loop (the per-test loop, closed
// after the test), unused_tcp_port (one kernel-assigned TCP port) and
// unused_tcp_port_factory (a callable producing pairwise-distinct ports for
// the test's duration).
//
// # Asynchronous Tests
//
// Collection attaches the asyncio marker keyword to every callable the
// classifier recognizes as asynchronous. Marked items have the event_loop
// fixture injected into their request set even when not declared, and their
// bodies are driven on that loop instead of being called directly. While a
// marked test runs, its loop is installed in the process-wide ambient slot
// (see CurrentLoop) and the previous value is restored afterwards.
package looptest
