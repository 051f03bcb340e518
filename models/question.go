package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type QuestionKind string

const (
	KindText         QuestionKind = "text"
	KindSingleChoice QuestionKind = "single_choice"
	KindMultiChoice  QuestionKind = "multi_choice"
)

// ParseQuestionKind nhận đúng ba giá trị của nguồn câu hỏi.
func ParseQuestionKind(s string) (QuestionKind, error) {
	switch k := QuestionKind(s); k {
	case KindText, KindSingleChoice, KindMultiChoice:
		return k, nil
	default:
		return "", fmt.Errorf("unknown question type %q", s)
	}
}

func (k QuestionKind) IsChoice() bool {
	return k == KindSingleChoice || k == KindMultiChoice
}

type Question struct {
	ID      string       `json:"id"`
	Prompt  string       `json:"question"`
	Kind    QuestionKind `json:"type"`
	Options []string     `json:"options,omitempty"`
}

// HasOption báo option có thuộc danh sách lựa chọn của câu hỏi hay không.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// QuestionID chấp nhận id dạng chuỗi hoặc số trong JSON và luôn giữ dạng chuỗi.
type QuestionID string

func (id *QuestionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = QuestionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("question id must be a string or number: %w", err)
	}
	*id = QuestionID(n.String())
	return nil
}
