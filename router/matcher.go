// Package router compiles route patterns into reusable path matchers.
package router

import (
	"regexp"
	"strings"
	"sync"
)

// Query is the parameter mapping extracted from a successful match. Keys are
// the parameter names declared in the pattern, values are the corresponding
// path components.
type Query map[string]string

// Get returns the value for a parameter name, or "" if absent.
func (q Query) Get(name string) string {
	return q[name]
}

// paramMarker introduces a named segment in a route pattern.
const paramMarker = ':'

// Matcher is the compiled form of a route pattern. It holds the parameter
// names in declaration order and an anchored regular expression with one
// anonymous capture group per name. The two always have equal length.
type Matcher struct {
	pattern string
	names   []string
	regex   *regexp.Regexp
}

// Compile converts a route pattern into a Matcher. Structurally identical
// patterns compile to distinct Matchers; no deduplication happens here.
//
// Parameter names are not checked for uniqueness: if the same name appears
// twice, the later segment's value overwrites the earlier one in the Query.
func Compile(pattern string) (*Matcher, error) {
	var (
		names []string
		src   strings.Builder
	)
	src.WriteString("^")

	i := 0
	for i < len(pattern) {
		if pattern[i] == paramMarker {
			start := i + 1
			end := start
			for end < len(pattern) && pattern[end] != '/' {
				end++
			}
			names = append(names, pattern[start:end])
			src.WriteString("([^/]+)")
			i = end
			continue
		}

		start := i
		for i < len(pattern) && pattern[i] != paramMarker {
			i++
		}
		src.WriteString(regexp.QuoteMeta(pattern[start:i]))
	}
	src.WriteString("$")

	regex, err := compileCached(src.String())
	if err != nil {
		return nil, err
	}

	return &Matcher{
		pattern: pattern,
		names:   names,
		regex:   regex,
	}, nil
}

// Match tests path against the compiled pattern. The whole path must be
// consumed: literal segments match exactly and each named segment matches
// exactly one non-empty path component. On success the returned Query maps
// each parameter name to its path component; a pattern with no parameters
// yields an empty, non-nil Query. A failed match returns (nil, false) and
// is a normal outcome, not an error.
func (m *Matcher) Match(path string) (Query, bool) {
	matches := m.regex.FindStringSubmatch(path)
	if matches == nil {
		return nil, false
	}

	query := make(Query, len(m.names))
	for i, name := range m.names {
		query[name] = matches[i+1]
	}

	return query, true
}

// Pattern returns the original route pattern.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// ParamNames returns the parameter names in pattern-declaration order.
func (m *Matcher) ParamNames() []string {
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// regexCacheMaxSize is the maximum number of entries in the regex cache.
const regexCacheMaxSize = 1000

// regexCacheEntry holds a compiled regex and its access order for LRU eviction.
type regexCacheEntry struct {
	regex       *regexp.Regexp
	accessOrder int64
}

// regexCache is a bounded LRU cache for compiled regular expressions.
// Duplicate routes are common (shadowing registrations, multiple registries
// over the same route table), so compiled regexes are shared by source.
var (
	regexCache         = make(map[string]*regexCacheEntry)
	regexCacheMu       sync.Mutex
	regexAccessCounter int64
)

// compileCached returns the compiled regex for src, reusing a cached one
// when available.
func compileCached(src string) (*regexp.Regexp, error) {
	metrics := getRegexCacheMetrics()

	regexCacheMu.Lock()
	if entry, ok := regexCache[src]; ok {
		regexAccessCounter++
		entry.accessOrder = regexAccessCounter
		regexCacheMu.Unlock()

		metrics.cacheHits.Inc()
		return entry.regex, nil
	}
	regexCacheMu.Unlock()

	metrics.cacheMisses.Inc()

	// Compile outside the lock (expensive operation)
	regex, err := regexp.Compile(src)
	if err != nil {
		return nil, err
	}

	regexCacheMu.Lock()
	defer regexCacheMu.Unlock()

	// Double-check after reacquiring the lock
	if entry, ok := regexCache[src]; ok {
		regexAccessCounter++
		entry.accessOrder = regexAccessCounter
		return entry.regex, nil
	}

	if len(regexCache) >= regexCacheMaxSize {
		evictLRURegexEntry()
		metrics.cacheEvictions.Inc()
	}

	regexAccessCounter++
	regexCache[src] = &regexCacheEntry{
		regex:       regex,
		accessOrder: regexAccessCounter,
	}
	metrics.cacheSize.Set(float64(len(regexCache)))

	return regex, nil
}

// evictLRURegexEntry removes the least recently used entry from the cache.
// Must be called with regexCacheMu held.
func evictLRURegexEntry() {
	var lruKey string
	var lruOrder int64 = -1

	for key, entry := range regexCache {
		if lruOrder == -1 || entry.accessOrder < lruOrder {
			lruOrder = entry.accessOrder
			lruKey = key
		}
	}

	if lruKey != "" {
		delete(regexCache, lruKey)
	}
}
