// Package prompt is a terminal binding of a valuation screen. It walks the
// applicable fields in form order, feeds every answer through the screen
// reducer, asks again when an edit is rejected, then submits and prints the
// rendered result.
//
// Prompts go through a PromptDriver so flows can be scripted in tests; the
// default driver is backed by survey.
package prompt
