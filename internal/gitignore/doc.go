// Package gitignore compiles and matches .gitignore patterns, per the
// syntax in https://git-scm.com/docs/gitignore: wildcards (*, ?, **),
// anchored patterns (/build), directory-only patterns (build/, which
// also cover the files inside), negation (!important.log), and nested
// .gitignore files scoped to their directory.
//
// The enumerator consults a Matcher to skip ignored files during a
// walk; the index coordinator uses ParsePatterns/DiffPatterns to pick
// a reconciliation strategy when an ignore file changes at runtime.
//
//	m := gitignore.New()
//	m.AddPattern("*.log")
//	m.AddPattern("!important.log")
//	if m.Match("error.log", false) {
//		// ignored
//	}
//
// Nested files register with their base directory:
//
//	m.AddFromFile("/repo/.gitignore", "")
//	m.AddFromFile("/repo/src/.gitignore", "src")
//
// Matching is safe from multiple goroutines.
package gitignore
