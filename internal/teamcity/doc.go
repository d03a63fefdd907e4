// Package teamcity writes the service messages IDEs parse to build a live
// test tree:
//
//	##teamcity[testStarted name='adds' locationHint='math_test.go:12:1' nodeId='3' parentNodeId='2' flowId='0']
//
// Values are escaped with the '|' scheme ('|'', '|n', '|[', ...). Failure
// positions come from a Locator scanning the failure's stack trace; when
// no frame references the test file the hint falls back to file:0:0.
package teamcity
