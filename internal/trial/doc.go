// Package trial implements the time-boxed trial gate. Trial state is a small
// JSON file under the data directory recording when the trial started and
// whether an activation code has lifted it. The trial window ends at 23:59:59
// of its final day, and activation codes are verified against a PBKDF2
// digest so the code itself is never stored.
package trial
