// Package driver provides the Driver aggregate.
//
// A driver can be assigned to a route only while active and while the licence is
// valid on the reference date of the route.
package driver
