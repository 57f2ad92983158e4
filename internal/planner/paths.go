package planner

import "allswell/internal/datekey"

// Collection layout, one tree per user:
//
//	users/{uid}                               profile, app title
//	users/{uid}/categories/{id}               categories
//	users/{uid}/dailyTasks/{dateKey}          per-day counters
//	users/{uid}/dailyTasks/{dateKey}/tasks/{id} task records
//	users/{uid}/monthlyGoals/{yyyy-mm}        monthly goals
const usersCollection = "users"

func categoriesPath(uid string) string {
	return "users/" + uid + "/categories"
}

func dailyTasksPath(uid string) string {
	return "users/" + uid + "/dailyTasks"
}

func dayTasksPath(uid string, key datekey.Key) string {
	return "users/" + uid + "/dailyTasks/" + key.String() + "/tasks"
}

func monthlyGoalsPath(uid string) string {
	return "users/" + uid + "/monthlyGoals"
}
