package store

import "fmt"

// FactsKey is the list holding the fact rotation.
const FactsKey = "funfacts"

// UserKey returns the key for a user's profile hash.
func UserKey(username string) string {
	return fmt.Sprintf("user:%s", username)
}

// ChannelKey returns the key for a user's channel membership set.
func ChannelKey(username string) string {
	return fmt.Sprintf("channel:%s", username)
}

// HistoryKey returns the key for a channel's message history list.
func HistoryKey(channel string) string {
	return fmt.Sprintf("channel_history:%s", channel)
}

// WeatherKey returns the key for a city's weather string.
func WeatherKey(city string) string {
	return fmt.Sprintf("weather:%s", city)
}
