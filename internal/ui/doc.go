// Package ui implements the interactive match picker using bubbletea's Elm architecture.
//
// During an interactive sync, tracks the automatic search could not resolve are handed to
// [Picker], which presents the Spotify candidates in a selectable list. The user picks a
// candidate with enter or skips the track with s/esc; either outcome is cached by the
// sync engine so the question is asked at most once per track.
//
// The (view) [pickModel] implements bubbletea's standard Init/Update/View pattern.
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help
// displayed via charmbracelet/bubbles/help.
package ui
