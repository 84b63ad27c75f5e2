package stepwise

// Version is the release of the library and CLI. Release builds override it with
// -ldflags "-X github.com/aretw0/stepwise.Version=...".
var Version = "0.3.0-dev"
