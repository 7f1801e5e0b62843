package txn

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unrelated error", errors.New("connection reset by peer"), false},
		{"illegal operation code", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}, true},
		{"legacy illegal operation code", mongo.CommandError{Code: 51, Message: "x"}, true},
		{"operation not supported in transaction", mongo.CommandError{Code: 263, Message: "x"}, true},
		{"write conflict is retryable, not unsupported", mongo.CommandError{Code: 112, Message: "WriteConflict"}, false},
		{"wrapped command error", fmt.Errorf("move document: %w", mongo.CommandError{Code: 20, Message: "x"}), true},
		{"standalone message", errors.New("Transaction numbers are only allowed on a Replica Set member"), true},
		{"session message", errors.New("sessions are not supported by this server"), true},
		{"transaction alone", errors.New("transaction aborted"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
