// Package testdef parses shell test-definition files.
//
// A definition file is line oriented. Sections group cases; each case holds
// the input fed to the shell and the output the shell must print:
//
//	######## Section Pipes
//	----# Test {basic pipe} ----------------
//	echo 100 | cat
//	----# Output
//	100
//	----# }
//
// Sections whose name starts with the word "bonus" belong to optional
// feature areas and are only run when the matching feature is enabled.
package testdef
