// Package notifier delivers rendered digests and per-bill announcements.
//
// The Notifier interface covers digest delivery: authenticated SMTP
// submission for the real channel and an io.Writer dry run for local use.
// The Announcer interface covers the optional per-bill X/Twitter posts that
// follow a successful digest. Announcers are best-effort; digest delivery is
// not.
package notifier
