// Package cron runs recurring producer actions on cron schedules.
//
// Each [Action] has a name, a [Schedule], and an Execute method. The
// [Runner] gives every action an independent loop:
//
//  1. Compute the next activation after now. If there is none, the loop
//     ends cleanly.
//  2. Sleep until the activation, re-reading the clock after each wake.
//  3. Execute. Returning false ends the loop; returning an error is logged
//     and the schedule continues.
//
// Schedules are parsed with [ParseSchedule], which accepts standard 5-field
// expressions ("0 2 * * *") and descriptors ("@daily", "@every 1h").
// [Once] builds a single-activation schedule for startup work.
//
// A panic inside an action is recovered and logged; the loop survives it.
// The [ext.CronFired] hook fires after every activation when the runner is
// given an emitter.
package cron
