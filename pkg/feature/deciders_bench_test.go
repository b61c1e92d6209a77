package feature_test

import (
	"strconv"
	"testing"

	"github.com/dmitrymomot/featurekit/pkg/feature"
)

func BenchmarkProportionOfUsers(b *testing.B) {
	decider := feature.ProportionOfUsers(testProportion)
	cfg := testConfig{"x": {Proportion: ptr(0.5)}}
	in := feature.ForUser("user-123456")

	for b.Loop() {
		decider(request(cfg, "x", in))
	}
}

func BenchmarkEnabledUsers(b *testing.B) {
	users := make([]string, 1000)
	for i := range users {
		users[i] = "user-" + strconv.Itoa(i)
	}
	decider := feature.EnabledUsers(testUsers)
	cfg := testConfig{"x": {Users: users}}
	in := feature.ForUser("user-999")

	for b.Loop() {
		decider(request(cfg, "x", in))
	}
}

func BenchmarkCheckContextBuild(b *testing.B) {
	for b.Loop() {
		_ = feature.NewBuilder().UserID("alice").Dimension("country", "NL").MustBuild()
	}
}
