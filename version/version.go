package version

// Version wird beim Build via -ldflags gesetzt
var Version string = "0.0.0"
