// Package deploy reads the outputs of the deployed stack and turns them into
// the environment the clients need.
package deploy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/subosito/gotenv"
)

var (
	ErrMissingOutput = errors.New("missing stack output")
	ErrStackNotFound = errors.New("stack not found in outputs file")
)

// output key -> environment variable
var outputEnvNames = map[string]string{
	"ClientPoolId":    "VITE_USER_POOL_CLIENT_ID",
	"UserPoolId":      "VITE_USER_POOL_ID",
	"RestAPIEndpoint": "API_ENDPOINT",
	"IdentityPoolId":  "VITE_IDENTITY_POOL_ID",
	"ClientAppBucket": "FRONT_END_BUCKET",
	"DistributionID":  "DISTRIBUTION_ID",
}

// Outputs holds the outputs of one stack, keyed by output key.
type Outputs struct {
	Stack  string
	Values map[string]string
}

// describeStacks is the shape printed by `aws cloudformation describe-stacks`.
type describeStacks struct {
	Stacks []struct {
		StackName string `json:"StackName"`
		Outputs   []struct {
			OutputKey   string `json:"OutputKey"`
			OutputValue string `json:"OutputValue"`
		} `json:"Outputs"`
	} `json:"Stacks"`
}

// LoadOutputs reads a stack outputs file. Both the `cdk deploy --outputs-file`
// layout ({"Stack": {"Key": "value"}}) and describe-stacks output are accepted.
// An empty stack name selects the only stack in the file.
func LoadOutputs(path, stack string) (*Outputs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read outputs file: %w", err)
	}

	stacks, err := parseOutputs(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse outputs file %s: %w", path, err)
	}

	if stack == "" {
		if len(stacks) != 1 {
			names := make([]string, 0, len(stacks))
			for name := range stacks {
				names = append(names, name)
			}
			sort.Strings(names)
			return nil, fmt.Errorf("%w: stack name required, file has %v", ErrStackNotFound, names)
		}
		for name := range stacks {
			stack = name
		}
	}

	values, ok := stacks[stack]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStackNotFound, stack)
	}
	return &Outputs{Stack: stack, Values: values}, nil
}

func parseOutputs(data []byte) (map[string]map[string]string, error) {
	var described describeStacks
	if err := json.Unmarshal(data, &described); err == nil && len(described.Stacks) > 0 {
		stacks := make(map[string]map[string]string, len(described.Stacks))
		for _, s := range described.Stacks {
			values := make(map[string]string, len(s.Outputs))
			for _, o := range s.Outputs {
				values[o.OutputKey] = o.OutputValue
			}
			stacks[s.StackName] = values
		}
		return stacks, nil
	}

	var stacks map[string]map[string]string
	if err := json.Unmarshal(data, &stacks); err != nil {
		return nil, err
	}
	return stacks, nil
}

// Env maps the known outputs to environment variables and adds VITE_REGION,
// taken from the user pool id prefix. Unknown and empty outputs are skipped.
func (o *Outputs) Env() (map[string]string, error) {
	env := make(map[string]string, len(outputEnvNames)+1)
	for key, value := range o.Values {
		name, ok := outputEnvNames[key]
		if !ok || value == "" {
			continue
		}
		env[name] = value
	}

	poolID, ok := env["VITE_USER_POOL_ID"]
	if !ok {
		return nil, fmt.Errorf("%w: UserPoolId in stack %s", ErrMissingOutput, o.Stack)
	}
	region, _, _ := strings.Cut(poolID, "_")
	env["VITE_REGION"] = region

	return env, nil
}

// APIEndpoint returns the RestAPIEndpoint output.
func (o *Outputs) APIEndpoint() (string, error) {
	endpoint := o.Values["RestAPIEndpoint"]
	if endpoint == "" {
		return "", fmt.Errorf("%w: RestAPIEndpoint in stack %s", ErrMissingOutput, o.Stack)
	}
	return endpoint, nil
}

// WriteEnvFile writes env to path in dotenv format, one sorted KEY="value"
// line per variable.
func WriteEnvFile(path string, env map[string]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := gotenv.Write(gotenv.Env(env), path); err != nil {
		return fmt.Errorf("failed to write env file: %w", err)
	}
	return nil
}
