package eventboard

// DemoSnapshot is the fallback shown when no real data has ever loaded.
func DemoSnapshot() Snapshot {
	return MustSnapshot(
		Entry{Name: "IT Manager", Count: 8},
		Entry{Name: "CodeSustain", Count: 12},
		Entry{Name: "Web Weavers", Count: 5},
		Entry{Name: "Anime Quiz", Count: 20},
		Entry{Name: "TechJar", Count: 7},
		Entry{Name: "Illustra", Count: 10},
		Entry{Name: "Sensorize", Count: 6},
		Entry{Name: "Chronoscape", Count: 4},
	)
}
