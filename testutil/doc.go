// Package testutil provides test components for socialauth packages.
//
// A TestComponent is a component.Component that can also be reset,
// snapshotted and restored between test cases:
//
//	func TestSessionHalf(t *testing.T) {
//	    mini := testutil.NewMiniRedis()
//	    testutil.T(t).Setup(mini)
//	    // mini is stopped when the test ends
//	}
//
// MiniRedis runs an in-process Redis server. Backend serves the gateway
// and key service endpoints and records every request it receives.
package testutil
