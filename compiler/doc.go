/*
Package compiler ties the stages together.

Process of compilation

	Program Text ->
		parse (front) ->
	Abstract Syntax Tree (ast) ->
		build (ir) ->
	Namespace of resolved functions (ir) ->
		encode (back) ->
	NENC Program (bytes)

Process of execution

	NENC Program ->
		load (vm) ->
	Function Table ->
		run (vm) ->
	Output
*/
package compiler
