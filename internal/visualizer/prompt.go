package visualizer

import "strings"

// The model receives the room photo first, then the floor material, then the
// wall material when present. The prompts refer to the materials by that
// position.

var floorPromptLines = []string{
	"Replace only the floor in the room using the second image as the floor material.",
	"Keep the walls, ceiling, furniture, lighting, shadows, and all objects exactly the same.",
	"Do not modify room geometry or change perspective.",
	"Apply the new material realistically:",
	"- Match the original floor perspective and angle.",
	"- Blend it naturally with the room lighting.",
	"- Keep furniture shadows and contact points intact.",
	"- Do not distort or alter any objects.",
	"Do not change anything except the floor surface.",
}

var wallsPromptLines = []string{
	"Replace only the visible walls in the room using the second image as the wall material.",
	"Do not modify the floor, furniture, windows, ceiling, or any objects.",
	"Keep the room structure exactly the same:",
	"- Maintain original lighting and shadows on the wall.",
	"- Preserve edges around windows, doors, and ceiling lines.",
	"- Apply the new material cleanly without affecting other areas.",
	"The result should look like the new wall material was installed in the real room.",
}

var bothPromptLines = []string{
	"Replace the floor using the second image, and replace the walls using the third image.",
	"Do not change any other part of the room.",
	"Keep the original room structure:",
	"- Preserve furniture, decor, windows, ceiling, lights, shadows, and reflections.",
	"- Maintain correct perspective for both floor and walls.",
	"- Blend materials naturally with room lighting.",
	"Only change the floor and wall surfaces. Everything else must remain untouched.",
}

// BuildPrompt returns the edit instruction for the requested mode.
func BuildPrompt(mode Mode) string {
	switch mode {
	case ModeWalls:
		return strings.Join(wallsPromptLines, " ")
	case ModeBoth:
		return strings.Join(bothPromptLines, " ")
	default:
		return strings.Join(floorPromptLines, " ")
	}
}
