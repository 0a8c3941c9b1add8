// Package scheduler runs the periodic reminder sweep.
//
// Each sweep looks up users whose reminder time equals the current UTC minute and sends each
// of them one message. Delivery is fire-and-forget: a user who blocked the bot has reminders
// switched off, any other failure is logged and the user is tried again on the next day.
package scheduler
