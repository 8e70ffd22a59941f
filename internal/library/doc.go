// Package library provides read/write access to the DJ source library.
//
// [Source] is the capability interface; [SQLiteLibrary] implements it over the library's
// sqlite database. Writes go through a [CommitSink] so the same save path serves both real
// persistence ([RealSink]) and dry runs ([DryRunSink]).
package library
