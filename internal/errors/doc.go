// Package errors provides coded, actionable error messages for the
// imgupload command line.
//
// Each code maps to a category, a short message and a longer detail:
//   - E1xx: configuration (files, .env, environment overrides)
//   - E2xx: command line (arguments, local files, upload outcome)
//   - E3xx: development server (storage, listening)
//
// # Usage
//
//	err := errors.New("E101").
//	    WithDetail("No imgupload.json or imgupload.yaml in /srv/app").
//	    WithSuggestion("Pass --config or create imgupload.json")
//
//	fmt.Print(err.Format())
//	// ERROR E101: Config file not found
//	//
//	//   No imgupload.json or imgupload.yaml in /srv/app
//	//
//	//   Hint: Pass --config or create imgupload.json
package errors
