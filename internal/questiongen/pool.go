package questiongen

import "github.com/abhisek/dataready/internal/catalog"

// PoolEntry is one built-in question and the skill it targets.
type PoolEntry struct {
	Text    string
	SkillID string
}

var rolePools = map[catalog.Role][]PoolEntry{
	catalog.RoleJunior: {
		{"Explain the difference between INNER JOIN and LEFT JOIN in SQL.", "sql_joins"},
		{"What is ETL and why is it important in data engineering?", "etl_concepts"},
		{"How would you handle duplicate records in a dataset?", "data_quality_concepts"},
		{"What is database normalization and why is it important?", "database_normalization"},
		{"Explain what an index is and when you would use one.", "indexing_basics"},
		{"What's the difference between DELETE and TRUNCATE in SQL?", "sql_basics"},
		{"How do you use GROUP BY and HAVING clauses in SQL?", "sql_aggregations"},
		{"What is a primary key vs a foreign key?", "relational_db_concepts"},
		{"Explain the concept of ACID properties in databases.", "relational_db_concepts"},
		{"What are the basic Git commands you use daily?", "git_basics"},
		{"How would you read a large CSV file efficiently in Python?", "python_fundamentals"},
		{"What's the difference between a list and a tuple in Python?", "python_fundamentals"},
		{"Explain what cloud storage is and give examples.", "cloud_fundamentals"},
		{"What is the difference between SQL and NoSQL databases?", "relational_db_concepts"},
		{"How would you schedule a script to run daily?", "linux_cli_basics"},
	},
	catalog.RoleMid: {
		{"How would you design an ETL pipeline for daily data loads of 10GB?", "etl_pipeline_design"},
		{"Explain window functions in SQL and give an example use case.", "sql_window_functions"},
		{"What strategies would you use to optimize a slow Spark job?", "spark_tuning"},
		{"Describe how you would implement incremental data loading.", "incremental_loads"},
		{"What is Apache Airflow and how do you design DAGs?", "airflow_basics"},
		{"Explain the difference between batch and micro-batch processing.", "batch_processing"},
		{"How do you handle schema evolution in a data pipeline?", "schema_evolution"},
		{"What are CTEs and when would you use recursive CTEs?", "sql_ctes"},
		{"Describe your approach to data quality testing.", "data_testing"},
		{"How does Spark lazy evaluation work and why is it useful?", "spark_fundamentals"},
		{"What are the different join strategies in Spark?", "spark_dataframes"},
		{"How would you partition data in a data lake?", "data_lakes_basics"},
		{"Explain the concept of data lineage and why it matters.", "lineage_tracking"},
		{"What monitoring would you set up for a production pipeline?", "pipeline_monitoring"},
		{"How do you handle late-arriving data in a pipeline?", "data_quality_concepts"},
	},
	catalog.RoleSenior: {
		{"How would you design a data platform that scales from 100GB to 10TB daily?", "data_platform_design"},
		{"Explain how you would implement exactly-once semantics in streaming.", "exactly_once_semantics"},
		{"What are the trade-offs between data lake and data warehouse?", "lakehouse_architecture"},
		{"How would you handle data skew in a distributed processing job?", "data_skew_handling"},
		{"Describe your approach to optimizing cloud costs for data workloads.", "cloud_cost_optimization"},
		{"How would you design a real-time analytics system?", "stream_processing"},
		{"Explain the CAP theorem and its implications for data systems.", "cap_theorem"},
		{"How do you ensure data consistency in an event-driven architecture?", "distributed_computing"},
		{"What strategies do you use for disaster recovery in data systems?", "distributed_computing"},
		{"How would you implement data observability at scale?", "data_observability"},
		{"Describe your approach to managing technical debt in pipelines.", "data_platform_design"},
		{"How do you design for both OLTP and OLAP workloads?", "data_platform_design"},
		{"What's your strategy for migrating from a monolith to microservices?", "data_platform_design"},
		{"How would you implement row-level security in a data warehouse?", "data_security"},
		{"Explain different caching strategies for data applications.", "caching_strategies"},
	},
	catalog.RoleStaff: {
		{"How would you design a multi-cloud data strategy for an enterprise?", "multi_cloud_strategy"},
		{"Describe your approach to implementing data governance at scale.", "data_governance"},
		{"How do you balance technical debt with feature delivery?", "platform_strategy"},
		{"What's your process for evaluating new data technologies?", "technology_evaluation"},
		{"How do you align data platform strategy with business goals?", "platform_strategy"},
		{"Describe how you've led a major data platform migration.", "cloud_migration"},
		{"How do you build and mentor a high-performing data team?", "team_technical_leadership"},
		{"What's your approach to cross-team data standardization?", "cross_team_collaboration"},
		{"How do you prioritize platform features across multiple teams?", "stakeholder_management"},
		{"Describe your approach to data mesh implementation.", "data_mesh_concepts"},
		{"How do you ensure compliance with regulations like GDPR?", "compliance_frameworks"},
		{"What metrics do you use to measure platform success?", "platform_strategy"},
		{"How do you handle conflicting requirements from different teams?", "stakeholder_management"},
		{"Describe your experience with vendor evaluation and selection.", "vendor_evaluation"},
		{"How do you create a 3-year technical roadmap?", "technical_roadmapping"},
	},
	catalog.RolePrincipal: {
		{"How would you evaluate and recommend a new data technology?", "technology_evaluation"},
		{"Describe your approach to aligning platform strategy with business.", "platform_strategy"},
		{"How do you foster a data-driven culture across an organization?", "team_technical_leadership"},
		{"What's your vision for the future of data engineering?", "platform_strategy"},
		{"How do you influence technical direction without direct authority?", "stakeholder_management"},
		{"Describe a time you changed an organization's technical direction.", "team_technical_leadership"},
		{"How do you balance innovation with operational stability?", "platform_strategy"},
		{"What's your approach to building partnerships with vendors?", "vendor_evaluation"},
		{"How do you ensure knowledge transfer across the organization?", "cross_team_collaboration"},
		{"Describe your experience with M&A data integration.", "enterprise_data_architecture"},
		{"How do you handle organization-wide data security concerns?", "data_security"},
		{"What's your approach to building a center of excellence?", "team_technical_leadership"},
		{"How do you measure and communicate ROI of platform investments?", "platform_strategy"},
		{"Describe your experience presenting to C-level executives.", "stakeholder_management"},
		{"How do you stay current with rapidly evolving technologies?", "technology_evaluation"},
	},
}

var cloudPools = map[catalog.CloudPreference][]PoolEntry{
	catalog.CloudAWS: {
		{"How would you design a data pipeline using AWS Glue and S3?", "aws_glue"},
		{"Explain the differences between Redshift, Athena, and EMR for analytics.", "aws_analytics"},
		{"How do you optimize Redshift query performance?", "redshift_optimization"},
		{"Describe how you'd use AWS Lambda for event-driven data processing.", "aws_lambda"},
		{"What's your approach to setting up Kinesis for real-time streaming?", "aws_kinesis"},
		{"How would you implement data lake architecture using S3 and Lake Formation?", "aws_lake_formation"},
		{"Explain how you'd use Step Functions to orchestrate data workflows.", "aws_step_functions"},
		{"How do you manage cross-account data access in AWS?", "aws_iam"},
		{"Describe your approach to cost optimization in AWS data workloads.", "aws_cost_optimization"},
		{"How would you set up EMR for large-scale Spark processing?", "aws_emr"},
	},
	catalog.CloudAzure: {
		{"How would you design a data pipeline using Azure Data Factory?", "azure_data_factory"},
		{"Explain the differences between Azure Synapse and Databricks.", "azure_synapse"},
		{"How do you optimize Synapse Analytics for large-scale queries?", "synapse_optimization"},
		{"Describe how you'd use Azure Functions for data processing.", "azure_functions"},
		{"What's your approach to setting up Event Hubs for streaming?", "azure_event_hubs"},
		{"How would you implement a data lakehouse using ADLS Gen2?", "azure_adls"},
		{"Explain how you'd use Azure Logic Apps for data workflow automation.", "azure_logic_apps"},
		{"How do you manage data security using Azure Purview?", "azure_purview"},
		{"Describe your approach to cost management in Azure data workloads.", "azure_cost_optimization"},
		{"How would you set up HDInsight for distributed data processing?", "azure_hdinsight"},
	},
	catalog.CloudGCP: {
		{"How would you design a data pipeline using Dataflow and Cloud Storage?", "gcp_dataflow"},
		{"Explain the differences between BigQuery and Dataproc for analytics.", "bigquery_dataproc"},
		{"How do you optimize BigQuery for cost and performance?", "bigquery_optimization"},
		{"Describe how you'd use Cloud Functions for event-driven processing.", "gcp_cloud_functions"},
		{"What's your approach to setting up Pub/Sub for real-time streaming?", "gcp_pubsub"},
		{"How would you implement data lake architecture using Cloud Storage?", "gcp_cloud_storage"},
		{"Explain how you'd use Cloud Composer (Airflow) for orchestration.", "gcp_cloud_composer"},
		{"How do you manage data governance using Data Catalog?", "gcp_data_catalog"},
		{"Describe your approach to cost optimization in GCP data workloads.", "gcp_cost_optimization"},
		{"How would you set up Dataproc for Spark processing at scale?", "gcp_dataproc"},
	},
}

// Pool returns the built-in questions for a role and cloud. Questions for a
// single concrete cloud provider come first. Unknown roles use the
// mid-level pool.
func Pool(role catalog.Role, cloud catalog.CloudPreference) []PoolEntry {
	base, ok := rolePools[role]
	if !ok {
		base = rolePools[catalog.RoleMid]
	}
	cloudQs := cloudPools[cloud]
	out := make([]PoolEntry, 0, len(cloudQs)+len(base))
	out = append(out, cloudQs...)
	return append(out, base...)
}
