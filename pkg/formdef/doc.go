// Package formdef loads wizard form definitions from YAML or JSON files and
// compiles them into model.Form values. The three intake forms (retirement
// budget, retirement income fact finder, risk tolerance assessment) ship
// embedded; callers may point LoadFS at a directory to override them.
package formdef
