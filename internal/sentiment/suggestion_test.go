package sentiment

import "testing"

func TestIsSuggestionEnglish(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"should", "You should add timestamps to your videos", true},
		{"could you", "Could you make a tutorial on Docker?", true},
		{"please", "Please add subtitles", true},
		{"pls shorthand", "pls do a part 2", true},
		{"would be great", "It would be great to see the full setup", true},
		{"i wish", "I wish you covered the edge cases too", true},
		{"suggest", "I suggest splitting this into two videos", true},
		{"feature request", "Feature request: chapters in the description", true},
		{"can you", "Can you do a video on Rust?", true},
		{"next video", "Next video on kubernetes maybe?", true},
		{"consider", "You might consider adding a FAQ section", true},
		{"request video", "My request for a future video: home lab tour", true},
		{"praise", "Great video!", false},
		{"criticism", "This is terrible, the audio is unbearable", false},
		{"statement", "I watched this twice yesterday", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSuggestion(tt.text); got != tt.want {
				t.Errorf("IsSuggestion(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsSuggestionFrench(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"pourriez-vous", "Pourriez-vous faire une vidéo sur Lyon ?", true},
		{"peux-tu", "Peux-tu montrer le montage complet ?", true},
		{"ce serait genial", "Ce serait génial d'avoir des sous-titres", true},
		{"je propose", "Je propose un épisode sur la photographie", true},
		{"il faudrait", "Il faudrait plus d'exemples concrets", true},
		{"tu devrais", "Tu devrais faire plus de vidéos comme ça", true},
		{"prochaine video", "Une idée pour la prochaine vidéo : les drones", true},
		{"s'il te plait", "Continue comme ça s'il te plaît", true},
		{"svp", "Plus de contenu svp", true},
		{"compliment", "Magnifique, bravo !", false},
		{"neutre", "Je regarde depuis Paris", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSuggestion(tt.text); got != tt.want {
				t.Errorf("IsSuggestion(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsSuggestionCaseInsensitive(t *testing.T) {
	if !IsSuggestion("PLEASE ADD SUBTITLES") {
		t.Error("expected uppercase text to match")
	}
	if !IsSuggestion("CoUlD YoU explain that again?") {
		t.Error("expected mixed-case text to match")
	}
}
