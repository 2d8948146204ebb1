// Package services contains the application services of the gophlink client:
// the login and signup OTP flows, the entry gateway and account housekeeping.
//
// Services talk to the backend through the typed client in package client
// and return *common.UserError for every failure the user should see. The
// wrapped cause is one of the sentinels below, a client sentinel, or a key
// provisioning error, for errors.Is.
package services
