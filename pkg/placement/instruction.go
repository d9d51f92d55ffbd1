package placement

import "github.com/apm-tool/apm/pkg/primitive"

// Instruction is the placement-relevant projection of an Instruction (or
// Chatmode/Agent, which may optionally carry an applyTo) primitive.
type Instruction struct {
	Name        string
	Description string
	ApplyTo     string
	SourceTag   string
	FilePath    string
	Body        string
}

// SelectiveMultiRelevanceThreshold fixes the relevance score at or above which a
// directory qualifies for selective-multi placement, resolving the 0.5-0.7
// ambiguity in favor of the stricter value.
const SelectiveMultiRelevanceThreshold = 0.7

const (
	singlePointMaxScore    = 0.33
	selectiveMultiMaxScore = 0.66
)

// BuildInstructions projects a primitive collection's Instruction and
// Chatmode primitives (the latter only when they carry an applyTo glob)
// into the placement engine's Instruction type.
func BuildInstructions(prims []primitive.Primitive) []Instruction {
	var out []Instruction
	for _, p := range prims {
		if p.Kind != primitive.KindInstruction && p.Kind != primitive.KindChatmode {
			continue
		}
		applyTo, _ := p.Frontmatter["applyTo"].(string)
		if p.Kind == primitive.KindChatmode && applyTo == "" {
			continue
		}
		desc, _ := p.Frontmatter["description"].(string)
		out = append(out, Instruction{
			Name:        p.Name,
			Description: desc,
			ApplyTo:     applyTo,
			SourceTag:   p.SourceTag,
			FilePath:    p.FilePath,
			Body:        p.Content,
		})
	}
	return out
}
