package ipa

import "golang.org/x/text/unicode/norm"

// Decompose returns the code points of s under canonical decomposition (NFD),
// each as its own string, so a base phone and its combining marks separate.
func Decompose(s string) []string {
	nfd := norm.NFD.String(s)
	out := make([]string, 0, len(nfd))
	for _, r := range nfd {
		out = append(out, string(r))
	}
	return out
}
