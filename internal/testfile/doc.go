// Package testfile loads declarative YAML test files into a registry.
//
// A file declares vars, hooks, describe blocks and flat tests:
//
//	vars:
//	  base: https://api.example.com
//	describe:
//	  - name: Users
//	    tests:
//	      - name: lists users
//	        intercept:
//	          routes:
//	            - url: "{{ .base }}/users"
//	              responseData: [{id: 1}]
//	        request:
//	          url: "{{ .base }}/users"
//	          as: users
//	        expect:
//	          - ref: users.status
//	            matcher: toBe
//	            args: [200]
//	          - ref: users.body
//	            matcher: hasLength
//	            args: [1]
//
// Strings are text/template sources with the sprig functions. A rendered
// string is decoded again as a YAML scalar, so numbers and booleans keep
// their type. A ref is a dotted path into the same variables.
//
// Hooks and steps either set variables or perform a request. Variables set
// by hooks are visible to every later test of the file; those set by a
// test's own steps are not.
package testfile
