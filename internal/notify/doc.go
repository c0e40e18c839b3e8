// Package notify manages the two alerting configurations: the SMTP
// settings used for alarm emails and the sound played on an alarm.
//
// Both are backend singletons that exist zero or one times. The shared
// singleton cache decides between create and update, so callers only
// ever say "save this".
package notify
