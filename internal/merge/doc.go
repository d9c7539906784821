// Package merge reconciles a shelved file snapshot with the live workspace
// copy of the same file.
//
// Two strategies are provided. The line strategy diffs both texts line by
// line and wraps every disagreeing run in git-style conflict markers. The
// JSON strategy parses both documents, collects every path where the values
// disagree and re-renders the current document with a conflict block at
// each of those paths. Mark picks the strategy from the file extension and
// falls back to lines when either side is not valid JSON.
//
// Output containing conflict blocks is meant for a human to resolve; it is
// never valid JSON and must not be parsed again.
package merge
