package constant

// Scenario Script Contract - global Lua functions and helpers recognized by the scenario engine.
const (
	// ScenarioRunFn is the entry point a scenario script must define.
	ScenarioRunFn = "Run"
)
