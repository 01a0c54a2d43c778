// Package stack describes the cloud resources that host the blog and
// synthesizes them into a CloudFormation template for an external
// provisioning engine.
package stack

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/pixegami/blog/internal/config"
)

// ErrInvalidStack wraps every validation failure.
var ErrInvalidStack = errors.New("invalid stack")

var (
	accountPattern = regexp.MustCompile(`^\d{12}$`)
	regionPattern  = regexp.MustCompile(`^[a-z]{2}(-gov)?-[a-z]+-\d$`)
	namePattern    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)
)

// Env pins a stack to an account and region. Empty fields leave the choice
// to the provisioning engine.
type Env struct {
	Account string `json:"account,omitempty"`
	Region  string `json:"region,omitempty"`
}

// Kind identifies a resource type.
type Kind string

const (
	KindBucket       Kind = "AWS::S3::Bucket"
	KindBucketPolicy Kind = "AWS::S3::BucketPolicy"
	KindDistribution Kind = "AWS::CloudFront::Distribution"
	KindRecordSet    Kind = "AWS::Route53::RecordSet"
)

// Resource is one declared resource. LogicalID is unique within a stack.
type Resource struct {
	LogicalID  string
	Kind       Kind
	Properties map[string]interface{}
	DependsOn  []string
}

// Stack is a named collection of resources provisioned together.
type Stack struct {
	Name        string
	Description string
	Env         Env
	Options     Options
	Resources   []Resource
	Outputs     map[string]Output
}

// Output is a value exported once the stack is provisioned.
type Output struct {
	Description string      `json:"Description,omitempty" yaml:"Description,omitempty"`
	Value       interface{} `json:"Value" yaml:"Value"`
}

// Options selects the optional hosting resources.
type Options struct {
	Bucket       bool
	CDN          bool
	Domain       string
	HostedZoneID string
}

// New returns a stack holding the resources opts asks for. With zero
// Options the stack is empty.
func New(name string, env Env, opts Options) *Stack {
	s := &Stack{Name: name, Env: env, Options: opts, Outputs: map[string]Output{}}
	if opts.Bucket {
		s.addBucket()
	}
	if opts.CDN {
		s.addDistribution()
	}
	if opts.Domain != "" && opts.HostedZoneID != "" {
		s.addRecord(opts.Domain, opts.HostedZoneID)
	}
	return s
}

// FromConfig builds the stack described by the deploy section.
func FromConfig(cfg config.DeployConfig) *Stack {
	return New(cfg.StackName,
		Env{Account: cfg.Account, Region: cfg.Region},
		Options{Bucket: cfg.Bucket, CDN: cfg.CDN, Domain: cfg.Domain, HostedZoneID: cfg.HostedZoneID},
	)
}

// Resource returns the resource with logicalID.
func (s *Stack) Resource(logicalID string) (Resource, bool) {
	for _, r := range s.Resources {
		if r.LogicalID == logicalID {
			return r, true
		}
	}
	return Resource{}, false
}

// Validate checks naming, environment and resource references.
func (s *Stack) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: stack name is required", ErrInvalidStack)
	}
	if !namePattern.MatchString(s.Name) {
		return fmt.Errorf("%w: stack name %q must start with a letter and contain only letters, digits and hyphens", ErrInvalidStack, s.Name)
	}
	if s.Env.Account != "" && !accountPattern.MatchString(s.Env.Account) {
		return fmt.Errorf("%w: account %q must be 12 digits", ErrInvalidStack, s.Env.Account)
	}
	if s.Env.Region != "" && !regionPattern.MatchString(s.Env.Region) {
		return fmt.Errorf("%w: malformed region %q", ErrInvalidStack, s.Env.Region)
	}

	if s.Options.Domain != "" && s.Options.HostedZoneID == "" {
		return fmt.Errorf("%w: domain %q needs a hosted zone id", ErrInvalidStack, s.Options.Domain)
	}
	if s.Options.HostedZoneID != "" && s.Options.Domain == "" {
		return fmt.Errorf("%w: hosted zone %q needs a domain", ErrInvalidStack, s.Options.HostedZoneID)
	}

	seen := make(map[string]bool, len(s.Resources))
	for _, r := range s.Resources {
		if seen[r.LogicalID] {
			return fmt.Errorf("%w: duplicate logical id %s", ErrInvalidStack, r.LogicalID)
		}
		seen[r.LogicalID] = true
	}
	for _, r := range s.Resources {
		for _, dep := range r.DependsOn {
			if !seen[dep] {
				return fmt.Errorf("%w: %s depends on missing resource %s", ErrInvalidStack, r.LogicalID, dep)
			}
		}
		for _, ref := range references(r.Properties) {
			if !seen[ref] {
				return fmt.Errorf("%w: %s references missing resource %s", ErrInvalidStack, r.LogicalID, ref)
			}
		}
	}
	for name, out := range s.Outputs {
		for _, ref := range references(out.Value) {
			if !seen[ref] {
				return fmt.Errorf("%w: output %s references missing resource %s", ErrInvalidStack, name, ref)
			}
		}
	}
	return nil
}

// references collects the logical IDs named by Ref and Fn::GetAtt inside v.
func references(v interface{}) []string {
	var refs []string
	switch t := v.(type) {
	case map[string]interface{}:
		for k, inner := range t {
			switch k {
			case "Ref":
				if id, ok := inner.(string); ok && !isPseudoParameter(id) {
					refs = append(refs, id)
				}
			case "Fn::GetAtt":
				if parts, ok := inner.([]interface{}); ok && len(parts) > 0 {
					if id, ok := parts[0].(string); ok {
						refs = append(refs, id)
					}
				}
			default:
				refs = append(refs, references(inner)...)
			}
		}
	case []interface{}:
		for _, inner := range t {
			refs = append(refs, references(inner)...)
		}
	}
	return refs
}

func isPseudoParameter(id string) bool {
	return len(id) > 5 && id[:5] == "AWS::"
}
