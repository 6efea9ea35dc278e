package bigquery

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/domain/interfaces"
	"github.com/secmon-lab/bqchat/pkg/domain/model/errs"
	bqv2 "google.golang.org/api/bigquery/v2"
	crmv1 "google.golang.org/api/cloudresourcemanager/v1"
	"google.golang.org/api/option"
)

const (
	ListerBigQuery        = "bigquery"
	ListerResourceManager = "resourcemanager"

	listPageSize = 100
)

// NewProjectLister returns the lister selected by name.
func NewProjectLister(ctx context.Context, name string, opts ...option.ClientOption) (interfaces.ProjectLister, error) {
	switch name {
	case "", ListerBigQuery:
		return NewBigQueryProjectLister(ctx, opts...)
	case ListerResourceManager:
		return NewResourceManagerProjectLister(ctx, opts...)
	default:
		return nil, goerr.New("unknown project lister", goerr.V("name", name), goerr.T(errs.TagValidation))
	}
}

// BigQueryProjectLister lists projects through the BigQuery projects.list API,
// which returns every project where the caller has BigQuery access.
type BigQueryProjectLister struct {
	svc *bqv2.Service
}

func NewBigQueryProjectLister(ctx context.Context, opts ...option.ClientOption) (*BigQueryProjectLister, error) {
	svc, err := bqv2.NewService(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create BigQuery REST service", goerr.T(errs.TagExternal))
	}
	return &BigQueryProjectLister{svc: svc}, nil
}

func (x *BigQueryProjectLister) ListProjects(ctx context.Context) ([]string, error) {
	var projects []string
	err := x.svc.Projects.List().MaxResults(listPageSize).Pages(ctx, func(page *bqv2.ProjectList) error {
		for _, p := range page.Projects {
			if p.ProjectReference != nil {
				projects = append(projects, p.ProjectReference.ProjectId)
			}
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list projects", goerr.T(errs.TagExternal))
	}
	return projects, nil
}

// ResourceManagerProjectLister lists ACTIVE projects through Cloud Resource Manager.
type ResourceManagerProjectLister struct {
	svc *crmv1.Service
}

func NewResourceManagerProjectLister(ctx context.Context, opts ...option.ClientOption) (*ResourceManagerProjectLister, error) {
	svc, err := crmv1.NewService(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create resource manager service", goerr.T(errs.TagExternal))
	}
	return &ResourceManagerProjectLister{svc: svc}, nil
}

func (x *ResourceManagerProjectLister) ListProjects(ctx context.Context) ([]string, error) {
	var projects []string
	err := x.svc.Projects.List().PageSize(listPageSize).Pages(ctx, func(page *crmv1.ListProjectsResponse) error {
		for _, p := range page.Projects {
			if p.LifecycleState == "ACTIVE" {
				projects = append(projects, p.ProjectId)
			}
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list projects", goerr.T(errs.TagExternal))
	}
	return projects, nil
}
