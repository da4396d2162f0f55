// Package router compiles route patterns into reusable path matchers.
//
// A route pattern is a path template whose named segments are marked with
// a leading colon, e.g. "/users/:userId". Compiling a pattern produces a
// Matcher that tests candidate paths and extracts the named parameters.
//
// # Matching semantics
//
//   - The whole path must be consumed; there are no prefix matches.
//   - Literal segments match exactly, including the leading separator.
//   - Each named segment matches exactly one non-empty path component;
//     parameters never span separators.
//   - A failed match is a normal outcome, reported as (nil, false).
//
// # Usage
//
//	m, err := router.Compile("/users/:userId")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	query, ok := m.Match("/users/42")
//	if ok {
//	    // query == router.Query{"userId": "42"}
//	}
//
// Compiled regular expressions are shared through a bounded LRU cache
// instrumented with Prometheus metrics; Matchers themselves are never
// deduplicated.
package router
