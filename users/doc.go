// Package users defines the user-record stream consumed by the scoring
// phase of a geoshard build.
//
// A Source produces records exposing a geographic location. The build
// pipeline drives a Source to exhaustion exactly once; implementations can
// wrap anything from an in-memory slice to a paged DynamoDB scan.
package users
