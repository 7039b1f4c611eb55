package filestore

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gardners/surveysystem-sub000/pkg/survey/serialize"
	"github.com/gardners/surveysystem-sub000/pkg/survey/types"
)

// SurveyDefinition is the parsed content of a survey definition file or
// snapshot:
//
//	line 1: version <1|2>
//	line 2: free text description
//	line 3: "with python" | "without python"   (version >= 2 only)
//	line 4..N: serialized questions
type SurveyDefinition struct {
	Version            int
	Description        string
	NextQuestionsFlags int
	Questions          []*types.Question
}

func parseSurveyDefinition(r io.Reader) (*SurveyDefinition, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	def := &SurveyDefinition{NextQuestionsFlags: types.NextQuestionsGeneric}

	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: missing version line", ErrBadSurveyFile)
	}
	versionLine := strings.TrimSpace(scanner.Text())
	switch versionLine {
	case "version 1":
		def.Version = 1
	case "version 2":
		def.Version = 2
	default:
		return nil, fmt.Errorf("%w: unsupported version line '%s'", ErrBadSurveyFile, versionLine)
	}

	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: missing description line", ErrBadSurveyFile)
	}
	def.Description = strings.TrimSpace(scanner.Text())

	if def.Version >= 2 {
		if !scanner.Scan() {
			return nil, fmt.Errorf("%w: missing python mode line", ErrBadSurveyFile)
		}
		switch strings.TrimSpace(scanner.Text()) {
		case "with python":
			def.NextQuestionsFlags = types.NextQuestionsPython
		case "without python":
			def.NextQuestionsFlags = types.NextQuestionsGeneric
		default:
			return nil, fmt.Errorf("%w: python mode line must be 'with python' or 'without python'", ErrBadSurveyFile)
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		q, err := serialize.DeserializeQuestion(line)
		if err != nil {
			return nil, fmt.Errorf("%w: question line: %s", ErrBadSurveyFile, err.Error())
		}
		def.Questions = append(def.Questions, q)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading survey definition: %s", ErrStorage, err.Error())
	}

	return def, nil
}

// LoadSurveySnapshot reads and parses the pinned snapshot identified by
// "<survey name>/<hash>". A usable snapshot must define at least one
// question.
func (p Paths) LoadSurveySnapshot(surveyID string) (*SurveyDefinition, error) {
	name, hash, ok := strings.Cut(surveyID, "/")
	if !ok {
		return nil, fmt.Errorf("%w: survey id '%s' lacks a snapshot hash", ErrBadSurveyFile, surveyID)
	}

	path, err := p.SurveySnapshotFile(name, hash)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: snapshot '%s'", ErrSurveyNotFound, surveyID)
		}
		return nil, fmt.Errorf("%w: opening snapshot: %s", ErrStorage, err.Error())
	}
	defer f.Close()

	def, err := parseSurveyDefinition(f)
	if err != nil {
		return nil, err
	}
	if len(def.Questions) == 0 {
		return nil, fmt.Errorf("%w: '%s'", ErrEmptySurvey, surveyID)
	}
	return def, nil
}
