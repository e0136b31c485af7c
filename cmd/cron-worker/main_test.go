package main

import "testing"

func TestLockKeyScopesByEnvironment(t *testing.T) {
	cases := map[string]string{
		"":     "hangout:cron-worker:lock:local",
		"prod": "hangout:cron-worker:lock:prod",
	}
	for env, want := range cases {
		if got := lockKey(env); got != want {
			t.Fatalf("lockKey(%q) = %q, want %q", env, got, want)
		}
	}
}
