package source

import (
	"context"
	"math/rand/v2"
	"time"

	"jobfinder/internal/job"
)

const demoTimeFormat = "2006-01-02 15:04"

// Demo serves a curated sample dataset so the whole pipeline can run
// end-to-end without network access. It is the default source.
type Demo struct {
	now func() time.Time
}

// NewDemo creates the sample-data source.
func NewDemo() *Demo {
	return &Demo{now: time.Now}
}

func (d *Demo) Name() string { return "demo" }

// Fetch returns the sample postings with slightly varied posted times so
// they look freshly scraped.
func (d *Demo) Fetch(_ context.Context) ([]job.Posting, error) {
	postings := make([]job.Posting, len(demoPostings))
	copy(postings, demoPostings)

	for i := range postings {
		posted := d.now().Add(-time.Duration(rand.IntN(24)) * time.Hour)
		postings[i].Posted = posted.Format(demoTimeFormat)
	}

	return postings, nil
}

var demoPostings = []job.Posting{
	{
		Title:    "Senior Data Scientist",
		Company:  "Google",
		Location: "Mountain View, CA (Remote)",
		URL:      "https://careers.google.com/jobs/example-ds-001",
		Source:   "Demo",
		Description: "We are looking for a Senior Data Scientist to join our Search team. " +
			"You will build machine learning models using Python, TensorFlow, and PyTorch. " +
			"Strong background in statistics, SQL, and data visualization required. " +
			"Experience with BigQuery, Spark, and distributed systems is a plus. " +
			"You will collaborate cross-functionally with engineering and product teams. " +
			"PhD or Master's in Computer Science, Statistics, or related field preferred. " +
			"5+ years of experience in data science or machine learning. " +
			"We welcome candidates requiring H1B visa sponsorship.",
	},
	{
		Title:    "Machine Learning Engineer",
		Company:  "Meta",
		Location: "Menlo Park, CA",
		URL:      "https://www.metacareers.com/jobs/example-mle-002",
		Source:   "Demo",
		Description: "Meta is seeking a Machine Learning Engineer for the Ads ranking team. " +
			"Responsibilities include developing scalable ML pipelines using PyTorch, " +
			"conducting A/B testing, and deploying models to production. " +
			"Required: Python, SQL, deep learning, feature engineering. " +
			"Experience with MLflow, Docker, Kubernetes is highly desired. " +
			"Strong analytical skills and attention to detail. " +
			"Visa sponsorship available for qualified candidates.",
	},
	{
		Title:    "Data Scientist - NLP",
		Company:  "Amazon",
		Location: "Seattle, WA",
		URL:      "https://www.amazon.jobs/en/jobs/example-nlp-003",
		Source:   "Demo",
		Description: "Amazon Alexa team is hiring a Data Scientist specializing in NLP. " +
			"You will work on natural language understanding, BERT fine-tuning, " +
			"and conversational AI. Python, PyTorch, Hugging Face transformers required. " +
			"Experience with AWS SageMaker, S3, and EMR is essential. " +
			"Statistical modelling, hypothesis testing, and experimentation skills needed. " +
			"We are not able to sponsor work visas at this time.",
	},
	{
		Title:    "Applied Scientist II",
		Company:  "Microsoft",
		Location: "Redmond, WA (Hybrid)",
		URL:      "https://careers.microsoft.com/jobs/example-as-004",
		Source:   "Demo",
		Description: "Microsoft Azure AI team seeks an Applied Scientist. " +
			"You will design and implement forecasting models, anomaly detection systems, " +
			"and causal inference frameworks. Required: Python, R, statistics, time series. " +
			"Experience with Azure ML, MLOps, and large-scale data processing. " +
			"Publications in top ML venues (NeurIPS, ICML, ICLR) are a plus. " +
			"Open to H1B sponsorship and H1B transfer.",
	},
	{
		Title:    "Data Analyst",
		Company:  "Netflix",
		Location: "Los Gatos, CA",
		URL:      "https://jobs.netflix.com/jobs/example-da-005",
		Source:   "Demo",
		Description: "Netflix is looking for a Data Analyst on the Content Strategy team. " +
			"You will analyze viewer behaviour using SQL, Python, and Tableau. " +
			"Build dashboards and reports in Looker. A/B testing and experiment design. " +
			"Strong communication and presentation skills. " +
			"2+ years of experience in analytics. Must be eligible to work in the US.",
	},
	{
		Title:    "Junior Data Scientist",
		Company:  "Local Startup Co.",
		Location: "Chicago, IL",
		URL:      "https://startupco.com/careers/ds-junior",
		Source:   "Demo",
		Description: "Exciting startup looking for a junior data scientist. " +
			"Basic Python and pandas experience. No specific ML framework required. " +
			"Willing to train the right candidate. No prior experience necessary. " +
			"Work with Excel and basic SQL. Fun team environment.",
	},
	{
		Title:    "Data Scientist - Fraud Detection",
		Company:  "JPMorgan Chase",
		Location: "New York, NY",
		URL:      "https://jpmorgan.com/careers/example-fraud-007",
		Source:   "Demo",
		Description: "JPMorgan Chase seeks a Data Scientist for the Fraud Detection team. " +
			"Build classification and anomaly detection models using Python, scikit-learn, XGBoost. " +
			"Work with large-scale transaction data in Spark and Hive. " +
			"Strong SQL skills and experience with PostgreSQL required. " +
			"Risk analytics background preferred. " +
			"Sponsorship not available; must have existing work authorization.",
	},
	{
		Title:    "ML Engineer - Recommendation Systems",
		Company:  "Spotify",
		Location: "New York, NY (Remote-friendly)",
		URL:      "https://www.lifeatspotify.com/jobs/example-rec-008",
		Source:   "Demo",
		Description: "Spotify is growing its ML team! We need an engineer to build " +
			"recommendation systems using collaborative filtering, matrix factorization, " +
			"and deep learning. Python, TensorFlow, Spark, Kafka required. " +
			"Experience with A/B testing frameworks and feature engineering. " +
			"We sponsor H1B visas and support OPT/CPT candidates. " +
			"MLflow or Kubeflow experience is a strong plus.",
	},
	{
		Title:    "Research Scientist - Computer Vision",
		Company:  "Apple",
		Location: "Cupertino, CA",
		URL:      "https://jobs.apple.com/en-us/details/example-cv-009",
		Source:   "Demo",
		Description: "Apple Vision Pro team is looking for a Research Scientist specializing " +
			"in computer vision and deep learning. PyTorch, CNNs, object detection. " +
			"Published research preferred. Strong Python and C++ skills. " +
			"Experience deploying models to edge devices. " +
			"PhD in Computer Science or Electrical Engineering. " +
			"We provide visa sponsorship for highly qualified candidates.",
	},
	{
		Title:    "Senior Analytics Engineer",
		Company:  "Databricks",
		Location: "San Francisco, CA",
		URL:      "https://www.databricks.com/company/careers/example-ae-010",
		Source:   "Demo",
		Description: "Databricks seeks a Senior Analytics Engineer to build robust data pipelines. " +
			"dbt, Spark, Python, SQL are core tools. Experience with Snowflake and " +
			"BigQuery highly valued. Strong data modelling skills. " +
			"Collaborate with data scientists and stakeholders. " +
			"5+ years experience. Competitive salary and equity. " +
			"We are open to sponsoring H1B visas for the right candidate.",
	},
}
